// Package state persists the workspace state record (wow.conf).
//
// The record is the only coordination channel between a running daemon and
// short-lived commands, so every mutation is flushed before control returns:
//
//	repo := state.NewFileRepository(workspace)
//	st, reset, err := state.LoadOrReset(ctx, repo)
//	if err != nil {
//	    return err // defaults could not be flushed
//	}
//	st.Source = domain.SourceDaily
//	if err := repo.Save(ctx, st); err != nil {
//	    return err
//	}
//
// # Format
//
// wow.conf is a compact big-endian binary record guarded by a CRC32 trailer.
// See codec.go for the layout. Writes go to a temp file that is renamed over
// the previous one, so readers observe either the old or the new record.
//
// There is no file locking. Concurrent writers race and the last one wins.
package state

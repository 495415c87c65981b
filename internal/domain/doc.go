// Package domain contains the core types shared by every wow component:
// the persisted workspace state, the wallpaper source catalogue and the
// error kinds surfaced at the command boundary.
package domain

// Package fetch retrieves wallpaper images from a redirecting source endpoint.
//
// Sources such as https://bing.img.run/rand_uhd.php answer with a redirect to
// a concrete, dated image URL. Resolve follows that redirect chain once and
// returns the terminal URL; Download then fetches the image bytes from it, so
// server-side randomization is only triggered once per update.
//
// Failures are returned as *Error and match domain.ErrFetch. There is no
// automatic retry: the daemon's polling loop is the retry mechanism.
package fetch

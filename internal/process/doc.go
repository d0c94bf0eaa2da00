// Package process tears down browser process trees that outlive a clean
// CDP shutdown.
package process

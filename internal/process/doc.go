// Package process cleans up browser processes that outlive their launcher.
package process

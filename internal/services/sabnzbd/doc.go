// Package sabnzbd submits NZB downloads to a SABnzbd instance.
package sabnzbd

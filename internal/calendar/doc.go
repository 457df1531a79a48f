// Package calendar renders scheduled games as an iCalendar feed.
package calendar

// Package classifier provides the signal classifiers run against every page.
//
// Each classifier maps a page to a raw down-confidence in [0, 1], or reports
// that it lacks the data to say anything. Classify turns that raw value into
// a leaf Classification. Classifiers that can attribute a failure to active
// blocking also implement BlockedDetector.
//
// Classifiers never mutate the session or its pages and may be called from
// several goroutines at once.
package classifier

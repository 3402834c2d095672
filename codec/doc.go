// Package codec provides pluggable key and value serializers for fugue
// topics and events.
//
// Codecs are selected by name ("json", "raw") through the application
// options or per-topic defaults. Custom codecs can be added with Register.
package codec

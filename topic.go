package fugue

// Event is the value side of a published message. Dumps produces the
// wire-ready representation; the publish pipeline treats it as opaque and
// only performs the final string-to-bytes conversion.
type Event interface {
	Dumps() (string, error)
}

// Topic is a structured reference to one or more underlying broker topics
// plus an optional default key codec. When a Topic is the destination of a
// send, the first name in Names is used.
type Topic struct {
	Names    []string
	KeyCodec string
}

// NewTopic creates a topic descriptor over the given broker topic names.
func NewTopic(names ...string) *Topic {
	return &Topic{Names: names}
}

// WithKeyCodec sets the topic's default key codec by name and returns the
// topic for chaining.
func (t *Topic) WithKeyCodec(name string) *Topic {
	t.KeyCodec = name
	return t
}

// Destination identifies where a send publishes: either a raw topic name or
// a *Topic descriptor. The two cases are resolved explicitly at the start of
// the publish pipeline.
type Destination struct {
	name  string
	topic *Topic
}

// ToName addresses a send to a raw topic name.
func ToName(name string) Destination {
	return Destination{name: name}
}

// ToTopic addresses a send to a topic descriptor.
func ToTopic(t *Topic) Destination {
	return Destination{topic: t}
}

// resolve returns the effective broker topic name and the destination's own
// key codec name ("" when the destination carries none).
func (d Destination) resolve() (string, string, error) {
	if d.topic != nil {
		if len(d.topic.Names) == 0 {
			return "", "", &ConfigurationError{Message: "topic descriptor has no names"}
		}
		return d.topic.Names[0], d.topic.KeyCodec, nil
	}
	if d.name == "" {
		return "", "", &ConfigurationError{Message: "empty topic name"}
	}
	return d.name, "", nil
}

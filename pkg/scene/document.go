package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/easelkit/easel/pkg/errors"
)

// =============================================================================
// Document - the serialized scene format
// =============================================================================

// Document is the canonical serialization format for a scene. It is used for
// history snapshots, versions, persistence, and the HTTP document service.
//
// The format is an ordered list of object records plus document metadata.
// Decoration objects (connection handles) are never serialized; connectors
// whose endpoints are missing from the record list are dropped on load.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Version   int       `json:"version" bson:"version"`
	SizeBytes int       `json:"size_bytes,omitempty" bson:"size_bytes,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Objects   []Record  `json:"objects" bson:"objects"`
}

// Record is one serialized scene object. Kind and Shape use their wire
// names; everything else mirrors the Object fields for the record's variant.
type Record struct {
	Kind   string `json:"kind" bson:"kind"`
	Shape  string `json:"shape,omitempty" bson:"shape,omitempty"`
	Object `bson:",inline"`
}

// =============================================================================
// Export
// =============================================================================

// Export serializes the scene into a document carrying the given metadata.
// Objects are exported in z-order; decorations are excluded. SizeBytes is
// the JSON-encoded size of the document itself.
func (s *Scene) Export(id, name string, version int, createdAt, updatedAt time.Time) *Document {
	doc := &Document{
		ID:        id,
		Name:      name,
		Version:   version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Objects:   make([]Record, 0, len(s.objects)),
	}
	for _, o := range s.objects {
		if o.Decoration() {
			continue
		}
		doc.Objects = append(doc.Objects, Record{
			Kind:   o.Kind.String(),
			Shape:  shapeName(o),
			Object: *o.Clone(),
		})
	}
	if data, err := json.Marshal(doc); err == nil {
		doc.SizeBytes = len(data)
	}
	return doc
}

// Snapshot serializes the scene to JSON bytes with the given metadata.
// It is the single serialization path shared by history capture, versions,
// and persistence.
func (s *Scene) Snapshot(id, name string, version int, createdAt, updatedAt time.Time) ([]byte, error) {
	return MarshalDocument(s.Export(id, name, version, createdAt, updatedAt))
}

// =============================================================================
// Load
// =============================================================================

// Load replaces the scene's contents with the document's objects.
//
// Validation happens before any mutation: if a record is malformed the scene
// is left untouched and a load failure is returned. Orphaned connectors
// (endpoints missing from the document) are silently dropped rather than
// loaded dangling. Emits a single EventLoaded on success.
func (s *Scene) Load(doc *Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}

	objs := make([]*Object, 0, len(doc.Objects))
	index := make(map[string]*Object, len(doc.Objects))
	for i, rec := range doc.Objects {
		o, err := recordToObject(rec)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "object %d", i)
		}
		if _, dup := index[o.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate object id %q", o.ID)
		}
		objs = append(objs, o)
		index[o.ID] = o
	}

	// Drop orphaned connectors instead of loading dangling references.
	kept := objs[:0]
	for _, o := range objs {
		if o.Kind == KindConnector {
			_, ok1 := index[o.StartID]
			_, ok2 := index[o.EndID]
			if !ok1 || !ok2 {
				delete(index, o.ID)
				continue
			}
		}
		kept = append(kept, o)
	}

	s.objects = kept
	s.index = index
	s.bus.Emit(Event{Kind: EventLoaded})
	return nil
}

func recordToObject(rec Record) (*Object, error) {
	if rec.Object.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}
	kind, err := ParseKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	if kind == KindHandle {
		return nil, fmt.Errorf("decoration kind %q in document", rec.Kind)
	}
	o := rec.Object.Clone()
	o.Kind = kind
	if kind == KindShape {
		shape, err := ParseShapeKind(rec.Shape)
		if err != nil {
			return nil, err
		}
		o.Shape = shape
	}
	return o, nil
}

func shapeName(o *Object) string {
	if o.Kind != KindShape {
		return ""
	}
	return o.Shape.String()
}

// =============================================================================
// Wire encoding
// =============================================================================

// MarshalDocument encodes a document as JSON bytes.
func MarshalDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a document.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	return &doc, nil
}

// ReadDocument decodes a JSON document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	return &doc, nil
}

// WriteDocument encodes a document as JSON to w.
func WriteDocument(doc *Document, w io.Writer) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

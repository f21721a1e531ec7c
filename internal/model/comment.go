package model

import (
	"encoding/hex"
	"encoding/json"
	"slices"

	"golang.org/x/crypto/sha3"
)

// CommentRecord is one comment read from the surface.
//
// A top-level record (a thread) may carry replies in Children. Replies never
// carry children of their own. A record is immutable once the traversal engine
// has emitted it; use Clone when a modified copy is needed.
type CommentRecord struct {
	// Commenter is the display name of the author, without the leading '@'.
	Commenter string

	// Content is the comment body as rendered.
	Content string

	// Link is the permalink of the comment.
	// It is empty when the permalink could not be read.
	Link string

	// Children holds the replies of a thread in document order.
	Children []CommentRecord
}

// Reply is the serialized shape of a child record.
type Reply struct {
	Commenter string `json:"commenter"`
	Content   string `json:"comment content"`
	Link      string `json:"link"`
}

// Thread is the serialized shape of a top-level record.
// Children is always present in the output, even when empty.
type Thread struct {
	Commenter string  `json:"commenter"`
	Content   string  `json:"comment content"`
	Link      string  `json:"link"`
	Children  []Reply `json:"children"`
}

// Thread converts the record into its serialized top-level shape.
func (c CommentRecord) Thread() Thread {
	children := make([]Reply, 0, len(c.Children))
	for _, child := range c.Children {
		children = append(children, Reply{
			Commenter: child.Commenter,
			Content:   child.Content,
			Link:      child.Link,
		})
	}
	return Thread{
		Commenter: c.Commenter,
		Content:   c.Content,
		Link:      c.Link,
		Children:  children,
	}
}

// MarshalJSON encodes the record as a top-level thread.
func (c CommentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Thread())
}

// UnmarshalJSON decodes a record from its top-level thread shape.
func (c *CommentRecord) UnmarshalJSON(data []byte) error {
	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	c.Commenter = t.Commenter
	c.Content = t.Content
	c.Link = t.Link
	c.Children = nil
	for _, r := range t.Children {
		c.Children = append(c.Children, CommentRecord{
			Commenter: r.Commenter,
			Content:   r.Content,
			Link:      r.Link,
		})
	}
	return nil
}

// Count returns the number of comments the record represents:
// itself plus each of its replies.
func (c CommentRecord) Count() int {
	return 1 + len(c.Children)
}

// Clone returns a deep copy of the record.
func (c CommentRecord) Clone() CommentRecord {
	out := c
	if c.Children != nil {
		out.Children = slices.Clone(c.Children)
	}
	return out
}

// Fingerprint returns a stable SHA3-256 digest of the commenter, content and
// link. Replies are not part of the digest, so a thread keeps its fingerprint
// when new replies appear under it.
func (c CommentRecord) Fingerprint() string {
	h := sha3.New256()
	h.Write([]byte(c.Commenter))
	h.Write([]byte{0})
	h.Write([]byte(c.Content))
	h.Write([]byte{0})
	h.Write([]byte(c.Link))
	return hex.EncodeToString(h.Sum(nil))
}

// Document is the output document produced for one run.
type Document struct {
	Comments []CommentRecord `json:"comments"`
}

// NewDocument returns a Document whose Comments slice is never nil,
// so that an empty run serializes as {"comments": []}.
func NewDocument(records ...CommentRecord) *Document {
	comments := make([]CommentRecord, 0, len(records))
	comments = append(comments, records...)
	return &Document{Comments: comments}
}

// Total returns the number of comments in the document, replies included.
func (d *Document) Total() int {
	n := 0
	for _, c := range d.Comments {
		n += c.Count()
	}
	return n
}

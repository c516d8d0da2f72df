// Package model holds the shared value objects that flow through the UCC
// pipeline and the job orchestrator: documents, blocks, clauses, matches,
// comparison results, and job records.
package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document is an ingested PDF. DocID is a content hash so that re-uploading
// the same bytes is recognized by SegmentStore as the same document.
type Document struct {
	DocID    string
	FileName string
	Bytes    []byte
}

// NewDocument hashes bytes into a stable DocID.
func NewDocument(fileName string, data []byte) Document {
	sum := sha256.Sum256(data)
	return Document{
		DocID:    hex.EncodeToString(sum[:]),
		FileName: fileName,
		Bytes:    data,
	}
}

// PageRange is an inclusive 1-based page span, used both on Block and as
// ClauseMatch evidence.
type PageRange struct {
	PageStart int `json:"page_start"`
	PageEnd   int `json:"page_end"`
}

// BBox is an optional page-coordinate bounding box (x0, y0, x1, y1).
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Block is one text region of a Document, in reading order.
type Block struct {
	BlockID        string
	DocID          string
	SequenceNumber int
	Text           string
	PageStart      int
	PageEnd        int
	BBox           *BBox
	SectionPath    []string
	IsAdmin        bool
}

// RootSection is the section path used when no heading has been seen yet.
const RootSection = "(root)"

package jform

import (
	_ "embed"
	"fmt"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns a fresh copy of the built-in document shown when no file
// could be opened.
func Sample() *Document {
	doc, err := ParseDocument(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("jform: embedded sample is invalid: %v", err))
	}
	return doc
}

package eventstream

import (
	"io"
	"strings"
	"testing"
)

func benchmarkDocument(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><catalog>`)
	for range n {
		b.WriteString(`<item id="42" kind="book"><title>Streaming &amp; parsing</title><!-- note --><price>9.99</price></item>`)
	}
	b.WriteString(`</catalog>`)
	return b.String()
}

func BenchmarkNext(b *testing.B) {
	doc := benchmarkDocument(500)
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	for b.Loop() {
		p, err := Open(strings.NewReader(doc))
		if err != nil {
			b.Fatalf("Open error = %v", err)
		}
		for {
			_, err := p.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				b.Fatalf("Next error = %v", err)
			}
		}
	}
}

func BenchmarkSkip(b *testing.B) {
	doc := benchmarkDocument(500)
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	for b.Loop() {
		p, err := Open(strings.NewReader(doc))
		if err != nil {
			b.Fatalf("Open error = %v", err)
		}
		for p.Scan() != StateEod {
			if err := p.Skip(); err != nil {
				b.Fatalf("Skip error = %v", err)
			}
		}
	}
}

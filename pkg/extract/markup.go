// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract turns provider output into something the rest of the
// gateway can use: HTML pages reduced to compact text, and JSON arrays
// recovered from free-form completion text.
package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ReduceMarkup strips tags from an HTML page and returns the visible text.
// Script, style, noscript, svg and head elements are skipped. Anchor targets
// are kept inline as "text (href)" so listing URLs survive the reduction.
func ReduceMarkup(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		// Fall back to raw text if HTML is malformed
		return string(content)
	}

	var sb strings.Builder
	reduceNode(doc, &sb)
	return strings.TrimSpace(sb.String())
}

func reduceNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "svg", "head":
			return
		}
	}

	if n.Type == html.TextNode {
		writeWord(sb, strings.Join(strings.Fields(n.Data), " "))
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		reduceNode(c, sb)
	}

	if n.Type == html.ElementNode && n.Data == "a" {
		if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
			writeWord(sb, "("+href+")")
		}
	}
}

func writeWord(sb *strings.Builder, text string) {
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(text)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
// max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

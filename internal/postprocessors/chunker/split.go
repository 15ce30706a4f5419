package chunker

import "unicode"

// Piece is one chunk of text and the rune offset where it starts in the source.
type Piece struct {
	Text   string
	Offset int
}

// span is a half-open rune range [start, end) of the source.
type span struct {
	start, end int
}

// Split breaks text into pieces of at most maxChunkSize runes.
//
// Paragraphs are packed greedily. A paragraph longer than the bound is split
// into sentences, and a sentence longer than the bound is split at the last
// whitespace before the bound, falling back to a hard cut. Pieces are
// substrings of the source with surrounding whitespace trimmed, so only
// whitespace is lost between them.
func Split(text string, maxChunkSize int) []Piece {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	rs := []rune(text)

	var segments []span
	for _, para := range paragraphs(rs) {
		if para.end-para.start <= maxChunkSize {
			segments = append(segments, para)
			continue
		}
		for _, sent := range sentences(rs, para) {
			if sent.end-sent.start <= maxChunkSize {
				segments = append(segments, sent)
				continue
			}
			segments = append(segments, hardSplit(rs, sent, maxChunkSize)...)
		}
	}

	pieces := make([]Piece, 0, len(segments))
	var cur span
	open := false
	for _, seg := range segments {
		if open && seg.end-cur.start <= maxChunkSize {
			cur.end = seg.end
			continue
		}
		if open {
			pieces = append(pieces, Piece{Text: string(rs[cur.start:cur.end]), Offset: cur.start})
		}
		cur, open = seg, true
	}
	if open {
		pieces = append(pieces, Piece{Text: string(rs[cur.start:cur.end]), Offset: cur.start})
	}
	return pieces
}

// Chunk is Split without offsets.
func Chunk(text string, maxChunkSize int) []string {
	pieces := Split(text, maxChunkSize)
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

// trim shrinks s until it starts and ends on non-whitespace.
// ok is false when s holds only whitespace.
func trim(rs []rune, s span) (span, bool) {
	for s.start < s.end && unicode.IsSpace(rs[s.start]) {
		s.start++
	}
	for s.end > s.start && unicode.IsSpace(rs[s.end-1]) {
		s.end--
	}
	return s, s.start < s.end
}

// paragraphs splits on blank lines.
func paragraphs(rs []rune) []span {
	var out []span
	add := func(s span) {
		if t, ok := trim(rs, s); ok {
			out = append(out, t)
		}
	}

	start := 0
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\n' {
			continue
		}
		j := i + 1
		for j < len(rs) && (rs[j] == ' ' || rs[j] == '\t' || rs[j] == '\r') {
			j++
		}
		if j < len(rs) && rs[j] == '\n' {
			add(span{start, i})
			start = j + 1
			i = j
		}
	}
	add(span{start, len(rs)})
	return out
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// sentences splits a paragraph after terminal punctuation followed by whitespace.
func sentences(rs []rune, para span) []span {
	var out []span
	add := func(s span) {
		if t, ok := trim(rs, s); ok {
			out = append(out, t)
		}
	}

	start := para.start
	for i := para.start; i < para.end-1; i++ {
		if isSentenceEnd(rs[i]) && unicode.IsSpace(rs[i+1]) {
			add(span{start, i + 1})
			start = i + 1
		}
	}
	add(span{start, para.end})
	return out
}

// hardSplit cuts s into pieces of at most max runes, preferring whitespace.
func hardSplit(rs []rune, s span, maxRunes int) []span {
	var out []span
	for s.end-s.start > maxRunes {
		cut := -1
		for w := s.start + maxRunes; w > s.start; w-- {
			if unicode.IsSpace(rs[w]) {
				cut = w
				break
			}
		}
		next := span{s.start, s.start + maxRunes}
		if cut != -1 {
			next.end = cut
		}
		if t, ok := trim(rs, next); ok {
			out = append(out, t)
		}
		rest, ok := trim(rs, span{next.end, s.end})
		if !ok {
			return out
		}
		s = rest
	}
	out = append(out, s)
	return out
}

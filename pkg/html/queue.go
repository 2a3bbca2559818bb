package html

// DefaultMaxQueued bounds how many tokens may pile up behind a blocking mark
// before the tokenizer gives up waiting for the close tag.
const DefaultMaxQueued = 1 << 16

// blockMark withholds the token at absolute position at (and everything
// after it) until the matching close tag has been tokenized.
type blockMark struct {
	id TagID
	at int
}

// tokenQueue is the lookahead buffer between the tokenizer and its reader.
// Positions are absolute: consumed counts every token ever handed out, so
// queue[0] sits at position consumed.
type tokenQueue struct {
	items    []Token
	consumed int
	marks    []blockMark
}

func (q *tokenQueue) reset() {
	q.items = q.items[:0]
	q.consumed = 0
	q.marks = q.marks[:0]
}

func (q *tokenQueue) push(t Token) {
	q.items = append(q.items, t)
}

// tail is the absolute position the next pushed token will receive.
func (q *tokenQueue) tail() int {
	return q.consumed + len(q.items)
}

func (q *tokenQueue) block(id TagID, at int) {
	q.marks = append(q.marks, blockMark{id: id, at: at})
}

// unblock removes the innermost mark if it belongs to id. A stray close tag
// for another element leaves the marks alone.
func (q *tokenQueue) unblock(id TagID) {
	if n := len(q.marks); n > 0 && q.marks[n-1].id == id {
		q.marks = q.marks[:n-1]
	}
}

func (q *tokenQueue) blocked() bool {
	return len(q.marks) > 0
}

// available is the number of tokens that may be read right now.
func (q *tokenQueue) available() int {
	if len(q.marks) == 0 {
		return len(q.items)
	}
	n := q.marks[0].at - q.consumed
	if n < 0 {
		return 0
	}
	if n > len(q.items) {
		return len(q.items)
	}
	return n
}

func (q *tokenQueue) peek() (Token, bool) {
	if q.available() == 0 {
		return Token{}, false
	}
	return q.items[0], true
}

func (q *tokenQueue) pop() (Token, bool) {
	if q.available() == 0 {
		return Token{}, false
	}
	t := q.items[0]
	q.items[0] = Token{}
	q.items = q.items[1:]
	q.consumed++
	if len(q.items) == 0 {
		q.items = q.items[:0:0]
	}
	return t, true
}

package session

import "github.com/bowerhall/mitek/internal/weighted"

// RingCapacity is how many recent inbound messages a chat remembers.
const RingCapacity = 10

// Ring is a fixed-size FIFO of recent messages. The zero value is empty and
// ready to use. Not safe for concurrent use; Manager guards it.
type Ring struct {
	buf   [RingCapacity]Message
	start int
	n     int
}

func (r *Ring) Push(m Message) {
	if r.n < RingCapacity {
		r.buf[(r.start+r.n)%RingCapacity] = m
		r.n++
		return
	}

	r.buf[r.start] = m
	r.start = (r.start + 1) % RingCapacity
}

func (r *Ring) Len() int {
	return r.n
}

// Items returns the held messages, oldest first.
func (r *Ring) Items() []Message {
	out := make([]Message, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%RingCapacity]
	}
	return out
}

// Sample picks one held message uniformly. ok is false when the ring is empty.
func (r *Ring) Sample(rnd weighted.Rand) (Message, bool) {
	if r.n == 0 {
		return Message{}, false
	}
	return r.buf[(r.start+rnd.IntN(r.n))%RingCapacity], true
}

package session

import (
	"errors"
	"math"
	"sync"
	"time"
)

var (
	ErrInvalidInterval = errors.New("interval needs min > 0, max >= min and max <= 30 days")
	ErrInvalidWeights  = errors.New("weights must be non-negative and sum to 1")
)

// State is the chat's position in the operator dialog.
type State int

const (
	Main State = iota
	AddingPhrase
	ChoosingList
	SettingInterval
	SettingWeights
)

func (s State) String() string {
	switch s {
	case Main:
		return "main"
	case AddingPhrase:
		return "adding_phrase"
	case ChoosingList:
		return "choosing_list"
	case SettingInterval:
		return "setting_interval"
	case SettingWeights:
		return "setting_weights"
	default:
		return "unknown"
	}
}

// Interval bounds the delay between dispatches, in seconds.
type Interval struct {
	Min int
	Max int
}

var DefaultInterval = Interval{Min: 3600, Max: 21600}

// MaxIntervalSeconds caps Max so the scheduler's delay fits a time.Duration.
const MaxIntervalSeconds = 30 * 24 * 60 * 60

func (i Interval) Validate() error {
	if i.Min <= 0 || i.Max < i.Min || i.Max > MaxIntervalSeconds {
		return ErrInvalidInterval
	}
	return nil
}

// weightTolerance absorbs float rounding in operator input such as
// "0.2 0.7 0.1", which does not sum to exactly 1.0 in binary.
const weightTolerance = 1e-9

// Weights is the categorical distribution over dispatch actions.
type Weights struct {
	Reply float64
	Quote float64
	Media float64
}

var DefaultWeights = Weights{Reply: 0.45, Quote: 0.45, Media: 0.10}

func (w Weights) Validate() error {
	if w.Reply < 0 || w.Quote < 0 || w.Media < 0 {
		return ErrInvalidWeights
	}
	sum := w.Reply + w.Quote + w.Media
	if math.IsNaN(sum) || math.Abs(sum-1) > weightTolerance {
		return ErrInvalidWeights
	}
	return nil
}

// Slice returns the weights in reply, quote, media order.
func (w Weights) Slice() []float64 {
	return []float64{w.Reply, w.Quote, w.Media}
}

// Message is an inbound chat message kept as a potential reply target.
type Message struct {
	ID     string
	UserID int64
	Text   string
	At     time.Time
}

// Pending is a phrase staged between "text received" and "category chosen".
// Token ties the category buttons to this particular staging.
type Pending struct {
	Text  string
	Token string
}

// Handle owns a running scheduler loop. Implementations are compared by
// identity, so they should be pointer types.
type Handle interface {
	Cancel()
}

// ChatSession is a snapshot of one chat's state.
type ChatSession struct {
	ChatID   int64
	State    State
	Handle   Handle
	Interval Interval
	Weights  Weights
	Recent   []Message
	Pending  *Pending
}

// Defaults seeds newly created sessions.
type Defaults struct {
	Interval Interval
	Weights  Weights
}

type chat struct {
	state    State
	handle   Handle
	interval Interval
	weights  Weights
	ring     Ring
	pending  *Pending
}

type Manager struct {
	mu       sync.Mutex
	chats    map[int64]*chat
	defaults Defaults
	newToken func() string
}

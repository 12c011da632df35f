package trackAdmin

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// NoticeLevel is the severity of a user-visible message.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a message meant for the operator, such as "session expired".
type Notice struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     NoticeLevel       `json:"level"`
	Message   string            `json:"message"`
	Op        string            `json:"op,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Common notice messages.
const (
	MessageSessionExpired  = "Session expired, please sign in again"
	MessageUnreachable     = "Cannot reach the server, check that it is running"
	MessageSignedIn        = "Signed in"
	MessageSignedOut       = "Signed out"
	MessageRegistered      = "Registration succeeded, you can now sign in"
	MessageInvalidLogin    = "Invalid credentials"
	MessageForbidden       = "Access denied"
	MessageRegisterRejects = "Registration failed, the user exists or the data is invalid"
)

type NoticeSink interface {
	Emit(ctx context.Context, notice Notice)
}

type NoOpNoticeSink struct{}

func (NoOpNoticeSink) Emit(context.Context, Notice) {}

// ChannelNoticeSink exposes notices on a buffered channel.
type ChannelNoticeSink struct {
	notices chan Notice
}

func NewChannelNoticeSink(buffer int) *ChannelNoticeSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNoticeSink{
		notices: make(chan Notice, buffer),
	}
}

func (s *ChannelNoticeSink) Emit(ctx context.Context, notice Notice) {
	select {
	case s.notices <- notice:
	case <-ctx.Done():
	}
}

func (s *ChannelNoticeSink) Notices() <-chan Notice {
	return s.notices
}

// JSONWriterNoticeSink writes one JSON object per line.
type JSONWriterNoticeSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterNoticeSink(w io.Writer) *JSONWriterNoticeSink {
	return &JSONWriterNoticeSink{
		writer: w,
	}
}

func (s *JSONWriterNoticeSink) Emit(ctx context.Context, notice Notice) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(notice)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// FuncNoticeSink adapts a function, e.g. a terminal printer.
type FuncNoticeSink func(Notice)

func (f FuncNoticeSink) Emit(_ context.Context, notice Notice) {
	if f != nil {
		f(notice)
	}
}

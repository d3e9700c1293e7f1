package v1

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type OpenSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Identity  int    `json:"identity"`
}

type SessionReply struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Identity    int    `json:"identity"`
	Connected   bool   `json:"connected"`
	LandingPage string `json:"landing_page,omitempty"`
	Reused      bool   `json:"reused,omitempty"`
}

type ListSessionsReply struct {
	Sessions []SessionReply `json:"sessions"`
}

type StartTestRequest struct {
	SessionID      string  `json:"session_id"`
	Target         string  `json:"target"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
	OffsetLeft     float64 `json:"offset_left,omitempty"`
	OffsetTop      float64 `json:"offset_top,omitempty"`
}

type StartTestReply struct {
	TestID      string    `json:"test_id"`
	Target      string    `json:"target"`
	TargetX     float64   `json:"target_x"`
	TargetY     float64   `json:"target_y"`
	MaxDistance float64   `json:"max_distance"`
	Deadline    time.Time `json:"deadline"`
}

// PredictionRequest carries one gaze prediction in page coordinates. The
// coordinates are pointers so that a missing field can be told apart from 0.
type PredictionRequest struct {
	SessionID string   `json:"session_id"`
	DocX      *float64 `json:"doc_x"`
	DocY      *float64 `json:"doc_y"`
}

type StreamPredictionsReply struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

type FinishTestReply struct {
	TestID  string  `json:"test_id"`
	Target  string  `json:"target"`
	Score   int     `json:"score"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Samples int     `json:"samples"`
}

type ActiveTestReply struct {
	Active    bool      `json:"active"`
	TestID    string    `json:"test_id,omitempty"`
	Target    string    `json:"target,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Deadline  time.Time `json:"deadline"`
}

type TestResult struct {
	TestID      string    `json:"test_id"`
	Target      string    `json:"target"`
	Score       int       `json:"score"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"std_dev"`
	Samples     int       `json:"samples"`
	MaxDistance float64   `json:"max_distance"`
	FinishedAt  time.Time `json:"finished_at"`
}

type ListResultsReply struct {
	SessionID string       `json:"session_id"`
	Results   []TestResult `json:"results"`
}

type TargetSummary struct {
	Target       string  `json:"target"`
	TestCount    int     `json:"test_count"`
	AverageScore float64 `json:"average_score"`
	BestScore    int     `json:"best_score"`
	AverageMean  float64 `json:"average_mean"`
}

type SessionSummaryReply struct {
	SessionID    string          `json:"session_id"`
	OverallScore float64         `json:"overall_score"`
	Targets      []TargetSummary `json:"targets"`
}

// Encode converts a typed message into its wire form.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// Decode fills a typed message from its wire form.
func Decode[T any](s *structpb.Struct) (T, error) {
	var out T
	if s == nil {
		return out, nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// Empty is the wire form of a reply without fields.
func Empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}

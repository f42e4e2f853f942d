package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/irwinb/tradecouncil/internal/graph"
	"github.com/irwinb/tradecouncil/internal/models"
)

func fullState() *models.AnalysisState {
	st := models.NewAnalysisState("AAPL", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	st.MarketContext = "AAPL price=185.50"
	st.PastMemories = []string{"ran up into earnings -> hold was right"}
	st.AnalystReports[models.AnalystMarket] = "uptrend intact"
	st.ResearchDebate = models.DebateState{
		Transcript: []models.DebateTurn{{Speaker: models.SpeakerBull, Argument: "earnings beat"}},
		RoundCount: 1,
		Consensus:  "lean bullish",
	}
	st.InvestmentPlan = "accumulate on weakness"
	st.TraderPlan = "scale in over two weeks"
	st.RiskDebate = models.DebateState{
		Transcript: []models.DebateTurn{{Speaker: models.SpeakerAggressive, Argument: "size up"}},
		RoundCount: 1,
		Consensus:  "moderate sizing",
	}
	return st
}

func TestStageContextViews(t *testing.T) {
	st := fullState()

	tests := []struct {
		stage  graph.Stage
		want   []string
		forbid []string
	}{
		{
			stage:  graph.StageFanout,
			want:   []string{"AAPL price=185.50", "hold was right"},
			forbid: []string{"uptrend intact", "earnings beat", "scale in"},
		},
		{
			stage:  graph.StageResearchDebate,
			want:   []string{"uptrend intact", "earnings beat"},
			forbid: []string{"size up", "scale in"},
		},
		{
			stage:  graph.StageRiskDebate,
			want:   []string{"scale in over two weeks", "size up"},
			forbid: []string{"earnings beat"},
		},
		{
			stage: graph.StageFinalDecision,
			want: []string{"uptrend intact", "lean bullish", "accumulate on weakness",
				"scale in over two weeks", "moderate sizing"},
		},
	}

	for _, tt := range tests {
		got := stageContext(tt.stage, st)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("%s context missing %q:\n%s", tt.stage, w, got)
			}
		}
		for _, f := range tt.forbid {
			if strings.Contains(got, f) {
				t.Errorf("%s context should not expose %q", tt.stage, f)
			}
		}
	}
}

func TestBuildMessages(t *testing.T) {
	st := fullState()

	msgs, err := buildMessages(context.Background(), graph.StageFanout, graph.PersonaMarketAnalyst, st)
	if err != nil {
		t.Fatalf("buildMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want system + user", len(msgs))
	}
	if msgs[0].Role != schema.System || msgs[0].Content == "" {
		t.Errorf("unexpected system message: %+v", msgs[0])
	}
	if msgs[1].Role != schema.User {
		t.Errorf("second message role = %s", msgs[1].Role)
	}
	for _, want := range []string{"AAPL", "2024-01-15", "AAPL price=185.50"} {
		if !strings.Contains(msgs[1].Content, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestBuildMessagesUnknownPersona(t *testing.T) {
	st := fullState()
	if _, err := buildMessages(context.Background(), graph.StageFanout, "astrologer", st); err == nil {
		t.Error("expected an error for an unregistered persona")
	}
}

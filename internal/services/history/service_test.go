package history

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chatrelay-go/internal/dependencies/mocks"
	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/storage/memory"
	"github.com/mcoot/chatrelay-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// User message tests

func (s *ServiceSuite) TestAppendUserMessage() {
	msg, err := s.service.AppendUserMessage(s.ctx, "alice", "hello")
	s.Require().NoError(err)

	s.Equal("alice", msg.Username)
	s.Equal("hello", msg.Text)
	s.Equal(s.clock.Now().UnixMilli(), msg.Timestamp)
	s.False(msg.IsAI)
	s.True(strings.HasPrefix(msg.ID, "msg-"))

	all, _ := s.service.All(s.ctx)
	s.Require().Len(all, 1)
	s.Equal(msg.ID, all[0].ID)
}

func (s *ServiceSuite) TestAppendUserMessageTrimsText() {
	msg, err := s.service.AppendUserMessage(s.ctx, "alice", "  hello  ")
	s.Require().NoError(err)
	s.Equal("hello", msg.Text)
}

func (s *ServiceSuite) TestAppendUserMessageRejectsEmptyText() {
	_, err := s.service.AppendUserMessage(s.ctx, "alice", "   ")
	s.ErrorIs(err, model.ErrEmptyMessage)

	all, _ := s.service.All(s.ctx)
	s.Empty(all)
}

func (s *ServiceSuite) TestAppendUserMessageRejectsTooLongText() {
	_, err := s.service.AppendUserMessage(s.ctx, "alice", strings.Repeat("a", 1001))
	s.ErrorIs(err, model.ErrMessageTooLong)

	all, _ := s.service.All(s.ctx)
	s.Empty(all)
}

func (s *ServiceSuite) TestAppendUserMessageAcceptsMaxLengthText() {
	_, err := s.service.AppendUserMessage(s.ctx, "alice", strings.Repeat("a", 1000))
	s.NoError(err)
}

func (s *ServiceSuite) TestMessageIDsAreUnique() {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		msg, err := s.service.AppendUserMessage(s.ctx, "alice", "hello")
		s.Require().NoError(err)
		s.False(seen[msg.ID], "duplicate message id %s", msg.ID)
		seen[msg.ID] = true
	}
}

// AI message tests

func (s *ServiceSuite) TestAppendAIMessage() {
	msg, err := s.service.AppendAIMessage(s.ctx, "I'm fine!")
	s.Require().NoError(err)

	s.Equal(model.AIAuthorName, msg.Username)
	s.True(msg.IsAI)
	s.True(strings.HasPrefix(msg.ID, "ai-"))
}

func (s *ServiceSuite) TestAppendAIMessageIsNotLengthChecked() {
	_, err := s.service.AppendAIMessage(s.ctx, strings.Repeat("a", 5000))
	s.NoError(err)
}

// Log order tests

func (s *ServiceSuite) TestTimestampsAreNonDecreasingInAppendOrder() {
	_, _ = s.service.AppendUserMessage(s.ctx, "alice", "first")
	s.clock.Advance(time.Second)
	_, _ = s.service.AppendUserMessage(s.ctx, "bob", "second")
	_, _ = s.service.AppendAIMessage(s.ctx, "third")

	all, err := s.service.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i := 1; i < len(all); i++ {
		s.GreaterOrEqual(all[i].Timestamp, all[i-1].Timestamp)
	}
}

func (s *ServiceSuite) TestRecentReturnsTailInLogOrder() {
	for _, text := range []string{"one", "two", "three", "four"} {
		_, _ = s.service.AppendUserMessage(s.ctx, "alice", text)
	}

	recent, err := s.service.Recent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("three", recent[0].Text)
	s.Equal("four", recent[1].Text)
}

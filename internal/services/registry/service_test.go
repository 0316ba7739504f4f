package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/storage/memory"
	"github.com/mcoot/chatrelay-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

// Join tests

func (s *ServiceSuite) TestJoinSucceeds() {
	user, err := s.service.Join(s.ctx, "conn-1", "alice")
	s.Require().NoError(err)

	s.Equal(model.ConnID("conn-1"), user.ID)
	s.Equal("alice", user.Username)
}

func (s *ServiceSuite) TestJoinTrimsUsername() {
	user, err := s.service.Join(s.ctx, "conn-1", "  alice  ")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *ServiceSuite) TestJoinRejectsEmptyUsername() {
	_, err := s.service.Join(s.ctx, "conn-1", "   ")
	s.ErrorIs(err, model.ErrEmptyUsername)
}

func (s *ServiceSuite) TestJoinRejectsTooLongUsername() {
	_, err := s.service.Join(s.ctx, "conn-1", strings.Repeat("a", 21))
	s.ErrorIs(err, model.ErrUsernameTooLong)
}

func (s *ServiceSuite) TestJoinAcceptsMaxLengthUsername() {
	_, err := s.service.Join(s.ctx, "conn-1", strings.Repeat("a", 20))
	s.NoError(err)
}

func (s *ServiceSuite) TestJoinRejectsTakenUsername() {
	_, err := s.service.Join(s.ctx, "conn-1", "alice")
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, "conn-2", "alice")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestJoinUniquenessIsCaseInsensitive() {
	_, err := s.service.Join(s.ctx, "conn-1", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, "conn-2", "aLiCe")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRejectedJoinDoesNotAlterRegistry() {
	_, _ = s.service.Join(s.ctx, "conn-1", "alice")
	_, _ = s.service.Join(s.ctx, "conn-2", "alice")

	users, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(model.ConnID("conn-1"), users[0].ID)

	_, err = s.service.Lookup(s.ctx, "conn-2")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestRejoinUnderNewNameFreesOldName() {
	_, err := s.service.Join(s.ctx, "conn-1", "alice")
	s.Require().NoError(err)

	user, err := s.service.Join(s.ctx, "conn-1", "bob")
	s.Require().NoError(err)
	s.Equal("bob", user.Username)

	users, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal("bob", users[0].Username)

	// The old name no longer belongs to any current user
	_, err = s.service.Join(s.ctx, "conn-2", "alice")
	s.NoError(err)
}

func (s *ServiceSuite) TestUsernameBecomesAvailableAfterLeave() {
	_, _ = s.service.Join(s.ctx, "conn-1", "alice")
	_, err := s.service.Leave(s.ctx, "conn-1")
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, "conn-2", "alice")
	s.NoError(err)
}

// Leave tests

func (s *ServiceSuite) TestLeaveReturnsUser() {
	_, _ = s.service.Join(s.ctx, "conn-1", "alice")

	user, err := s.service.Leave(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal("alice", user.Username)

	_, err = s.service.Lookup(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestLeaveUnjoinedConnectionIsNoop() {
	user, err := s.service.Leave(s.ctx, "conn-1")
	s.NoError(err)
	s.Nil(user)
}

// List tests

func (s *ServiceSuite) TestListReturnsUsersInJoinOrder() {
	_, _ = s.service.Join(s.ctx, "conn-1", "alice")
	_, _ = s.service.Join(s.ctx, "conn-2", "bob")
	_, _ = s.service.Join(s.ctx, "conn-3", "carol")

	users, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("alice", users[0].Username)
	s.Equal("bob", users[1].Username)
	s.Equal("carol", users[2].Username)
}

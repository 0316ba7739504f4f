package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chatrelay-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{ID: "conn-1", Username: "alice"}
	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal(user.Username, retrieved.Username)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByUsernameIsCaseInsensitive() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "Alice"})

	retrieved, err := s.storage.GetUserByUsername(s.ctx, "aLiCe")
	s.Require().NoError(err)
	s.Equal(model.ConnID("conn-1"), retrieved.ID)
}

func (s *StorageSuite) TestResaveUnderNewNameFreesOldName() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "alice"})
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "bob"})

	_, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)

	retrieved, err := s.storage.GetUserByUsername(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.ConnID("conn-1"), retrieved.ID)

	users, err := s.storage.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal("bob", users[0].Username)
}

func (s *StorageSuite) TestDeleteAfterResaveLeavesNoIndexEntries() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "alice"})
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "bob"})
	_ = s.storage.DeleteUser(s.ctx, "conn-1")

	_, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestDeleteUserClearsUsernameIndex() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "alice"})

	err := s.storage.DeleteUser(s.ctx, "conn-1")
	s.Require().NoError(err)

	_, err = s.storage.GetUser(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestDeleteUnknownUserIsNoop() {
	s.NoError(s.storage.DeleteUser(s.ctx, "nonexistent"))
}

func (s *StorageSuite) TestListUsersPreservesJoinOrder() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-1", Username: "alice"})
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-2", Username: "bob"})
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "conn-3", Username: "carol"})
	_ = s.storage.DeleteUser(s.ctx, "conn-2")

	users, err := s.storage.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("alice", users[0].Username)
	s.Equal("carol", users[1].Username)
}

// Message log tests

func (s *StorageSuite) TestAppendPreservesOrder() {
	for _, id := range []string{"m1", "m2", "m3"} {
		_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: id})
	}

	all, err := s.storage.AllMessages(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("m1", all[0].ID)
	s.Equal("m2", all[1].ID)
	s.Equal("m3", all[2].ID)
}

func (s *StorageSuite) TestAllMessagesIsPrefixOfLaterAll() {
	_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: "m1"})
	_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: "m2"})
	before, _ := s.storage.AllMessages(s.ctx)

	_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: "m3"})
	after, _ := s.storage.AllMessages(s.ctx)

	s.Require().GreaterOrEqual(len(after), len(before))
	for i := range before {
		s.Equal(before[i].ID, after[i].ID)
	}
}

func (s *StorageSuite) TestRecentMessagesReturnsTail() {
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: id})
	}

	recent, err := s.storage.RecentMessages(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("m3", recent[0].ID)
	s.Equal("m4", recent[1].ID)
}

func (s *StorageSuite) TestRecentMessagesWithFewerThanRequested() {
	_ = s.storage.AppendMessage(s.ctx, &model.Message{ID: "m1"})

	recent, err := s.storage.RecentMessages(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(recent, 1)
}

func (s *StorageSuite) TestStoredMessagesAreImmutable() {
	msg := &model.Message{ID: "m1", Text: "original"}
	_ = s.storage.AppendMessage(s.ctx, msg)
	msg.Text = "mutated"

	all, _ := s.storage.AllMessages(s.ctx)
	s.Equal("original", all[0].Text)
}

package database

import (
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockStore) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStore) GetUsers() ([]User, error) {
	args := m.Called()
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockStore) GetUserById(id int) (User, error) {
	args := m.Called(id)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStore) FindUserByUsernameEmail(username, email string) (User, error) {
	args := m.Called(username, email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStore) CreateChannel(params CreateChannelParams) (Channel, error) {
	args := m.Called(params)
	return args.Get(0).(Channel), args.Error(1)
}
func (m *MockStore) GetChannels() ([]Channel, error) {
	args := m.Called()
	return args.Get(0).([]Channel), args.Error(1)
}
func (m *MockStore) GetChannel(id int) (Channel, error) {
	args := m.Called(id)
	return args.Get(0).(Channel), args.Error(1)
}
func (m *MockStore) DeleteChannel(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockStore) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockStore) GetMessage(id int) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockStore) GetMessages(channelId int) ([]Message, error) {
	args := m.Called(channelId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockStore) UpdateMessage(id int, content string) error {
	args := m.Called(id, content)
	return args.Error(0)
}
func (m *MockStore) DeleteMessage(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockStore) CreateReaction(params CreateReactionParams) (Reaction, error) {
	args := m.Called(params)
	return args.Get(0).(Reaction), args.Error(1)
}
func (m *MockStore) GetReactions(messageId int) ([]Reaction, error) {
	args := m.Called(messageId)
	return args.Get(0).([]Reaction), args.Error(1)
}
func (m *MockStore) DeleteReaction(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

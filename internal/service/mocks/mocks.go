// Package mocks holds a gomock Publisher for the service tests. It is kept
// in mockgen's source-mode layout; `go generate ./internal/service` rewrites
// it from interfaces.go.
package mocks

import (
	context "context"
	reflect "reflect"

	events "github.com/willcldrr/exoticweeklywebiste/internal/events"
	models "github.com/willcldrr/exoticweeklywebiste/internal/models"
	gomock "go.uber.org/mock/gomock"
)

// MockPublisher is a mock of Publisher interface.
type MockPublisher struct {
	ctrl     *gomock.Controller
	recorder *MockPublisherMockRecorder
	isgomock struct{}
}

// MockPublisherMockRecorder is the mock recorder for MockPublisher.
type MockPublisherMockRecorder struct {
	mock *MockPublisher
}

// NewMockPublisher creates a new mock instance.
func NewMockPublisher(ctrl *gomock.Controller) *MockPublisher {
	mock := &MockPublisher{ctrl: ctrl}
	mock.recorder = &MockPublisherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPublisher) EXPECT() *MockPublisherMockRecorder {
	return m.recorder
}

// PublishDeleted mocks base method.
func (m *MockPublisher) PublishDeleted(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PublishDeleted", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// PublishDeleted indicates an expected call of PublishDeleted.
func (mr *MockPublisherMockRecorder) PublishDeleted(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PublishDeleted", reflect.TypeOf((*MockPublisher)(nil).PublishDeleted), ctx, id)
}

// PublishStory mocks base method.
func (m *MockPublisher) PublishStory(ctx context.Context, action events.Action, story *models.Story) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PublishStory", ctx, action, story)
	ret0, _ := ret[0].(error)
	return ret0
}

// PublishStory indicates an expected call of PublishStory.
func (mr *MockPublisherMockRecorder) PublishStory(ctx, action, story any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PublishStory", reflect.TypeOf((*MockPublisher)(nil).PublishStory), ctx, action, story)
}

package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Fetch(ctx context.Context, mode FetchMode) (*FeedResult, error) {
	args := m.Called(ctx, mode)
	res, _ := args.Get(0).(*FeedResult)
	return res, args.Error(1)
}

// test/mock/feature_flag.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/coregate/featureflag"
)

type MockFeatureFlag struct {
	mock.Mock
}

func (m *MockFeatureFlag) GetStatusFlag(ctx context.Context, flagCtx featureflag.FlagContext, flag string, defaultValue bool) (bool, error) {
	args := m.Called(ctx, flagCtx, flag, defaultValue)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeatureFlag) CbStatusFlag(ctx context.Context, cb featureflag.CallbackFunc, flagCtx featureflag.FlagContext, flag string, defaultValue bool) error {
	args := m.Called(ctx, cb, flagCtx, flag, defaultValue)
	return args.Error(0)
}

// test/mock/signature.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/coregate/signature"
)

type MockSignatureService struct {
	mock.Mock
}

func (m *MockSignatureService) UseSignature(req *signature.Request) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockSignatureService) VerifySignature(ctx context.Context, req *signature.Request) (*signature.Credential, error) {
	args := m.Called(ctx, req)
	credential, _ := args.Get(0).(*signature.Credential)
	return credential, args.Error(1)
}

func (m *MockSignatureService) EncryptSignature(query, body, publicKey string) (string, error) {
	args := m.Called(query, body, publicKey)
	return args.String(0), args.Error(1)
}

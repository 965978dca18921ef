// ABOUTME: go:generate directives for the gomock mocks in this package
// ABOUTME: Regenerate with go generate after changing auth.Backend or storage.Storage

// Package mocks provides gomock implementations of the ports used by quill.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(client.Ok(&resp))
package mocks

// MockBackend covers the auth endpoints: Login, Register, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/markalston/quill/internal/auth Backend

// MockStorage covers the key/value store behind the persisted identity: Get, Set, Remove
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_mock.go github.com/markalston/quill/internal/storage Storage

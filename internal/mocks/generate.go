// Package mocks provides mock implementations for testing the UI API.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the platform and audit ports. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	api := mocks.NewMockPlatformAPI(ctrl)
//	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

// Generate mock for PlatformAPI interface from internal/ports.
// This creates MockPlatformAPI with methods for all PlatformAPI interface methods:
// Login, VerifyTwoFA, RegisterTwoFAPhone, FetchProfile, SetupPIN, VerifyPIN, FetchNotifications
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=platform_api_mock.go github.com/pesaflow/ongeza-ui-api/internal/ports PlatformAPI

// Generate mock for AuditRepository interface from internal/ports.
// This creates MockAuditRepository with methods for all AuditRepository interface methods:
// Record, ListRecent
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=audit_repository_mock.go github.com/pesaflow/ongeza-ui-api/internal/ports AuditRepository

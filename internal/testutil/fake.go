package testutil

import (
	"context"
	"sync"

	"laptop-request-catalog/internal/models"
)

// FakeClient is an in-memory data client. Zero value returns an empty
// catalog and accepts every request.
type FakeClient struct {
	mu sync.Mutex

	Laptops   []models.Laptop
	ListErr   error
	CreateErr error

	// Gate, when set, blocks CreateRequest until it is closed.
	Gate chan struct{}

	ListCalls int
	Created   []models.NewLaptopRequest
}

// ListLaptops returns Laptops or ListErr.
func (f *FakeClient) ListLaptops(ctx context.Context) ([]models.Laptop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Laptop, len(f.Laptops))
	copy(out, f.Laptops)
	return out, nil
}

// CreateRequest records req and returns CreateErr.
func (f *FakeClient) CreateRequest(ctx context.Context, req models.NewLaptopRequest) error {
	f.mu.Lock()
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, req)
	return f.CreateErr
}

// CreatedRequests returns a copy of the recorded requests.
func (f *FakeClient) CreatedRequests() []models.NewLaptopRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.NewLaptopRequest, len(f.Created))
	copy(out, f.Created)
	return out
}

// ListCallCount returns how many times ListLaptops ran.
func (f *FakeClient) ListCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls
}

// SetListErr swaps the list error under the lock.
func (f *FakeClient) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListErr = err
}

package git

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable mock implementation of Repository for testing.
// Each method is backed by a function field. If the function field is nil,
// the method returns sensible zero values.
type MockRepository struct {
	PathFunc             func() string
	WorkingDirectoryFunc func() string
	IsHeadDetachedFunc   func() bool
	HeadFunc             func() (Branch, error)
	ResolveFunc          func(string) (Commit, error)
	ParentFunc           func(Commit) (Commit, bool, error)
	CheckOutFunc         func(Commit) error
}

func (m *MockRepository) Path() string {
	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return ""
}

func (m *MockRepository) WorkingDirectory() string {
	if m.WorkingDirectoryFunc != nil {
		return m.WorkingDirectoryFunc()
	}
	return ""
}

func (m *MockRepository) IsHeadDetached() bool {
	if m.IsHeadDetachedFunc != nil {
		return m.IsHeadDetachedFunc()
	}
	return false
}

func (m *MockRepository) Head() (Branch, error) {
	if m.HeadFunc != nil {
		return m.HeadFunc()
	}
	return Branch{}, nil
}

func (m *MockRepository) Resolve(name string) (Commit, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(name)
	}
	return Commit{}, nil
}

func (m *MockRepository) Parent(c Commit) (Commit, bool, error) {
	if m.ParentFunc != nil {
		return m.ParentFunc(c)
	}
	return Commit{}, false, nil
}

func (m *MockRepository) CheckOut(c Commit) error {
	if m.CheckOutFunc != nil {
		return m.CheckOutFunc(c)
	}
	return nil
}

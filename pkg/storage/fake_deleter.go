package storage

import (
	"path/filepath"
)

// FakeDeleter implements Deleter for testing.
// It records every call and fails for names listed in FailOn;
// all other calls are forwarded to Next when set.
type FakeDeleter struct {
	Calls  []string
	FailOn map[string]error
	Next   Deleter
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	if err, ok := f.FailOn[filepath.Base(path)]; ok {
		return err
	}
	if f.Next != nil {
		return f.Next.Remove(path)
	}
	return nil
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	if err, ok := f.FailOn[filepath.Base(path)]; ok {
		return err
	}
	if f.Next != nil {
		return f.Next.RemoveAll(path)
	}
	return nil
}

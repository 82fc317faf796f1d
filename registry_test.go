package forge

import "testing"

type rtOverflow struct{}

func TestRegisterComponentPanicsPastAddressSpace(t *testing.T) {
	globalComponents.mu.Lock()
	saved := globalComponents.nextID
	globalComponents.nextID = maxComponentKinds
	globalComponents.mu.Unlock()
	defer func() {
		globalComponents.mu.Lock()
		globalComponents.nextID = saved
		globalComponents.mu.Unlock()
	}()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected registering past the component id space to panic")
		}
		if _, ok := r.(AddressSpaceExhaustedError); !ok {
			t.Fatalf("expected AddressSpaceExhaustedError, got %T: %v", r, r)
		}
	}()

	RegisterComponent[rtOverflow](StorageTable)
}

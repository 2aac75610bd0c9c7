package permission

import (
	"context"
	"errors"
	"testing"

	permissiondom "github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
)

type fakeSource struct {
	codes []string
	err   error
}

func (f *fakeSource) GrantedCodes(ctx context.Context, userID, role string) ([]string, error) {
	return f.codes, f.err
}

func TestClient_Check_NoRequiredPermissionsPasses(t *testing.T) {
	c := New(&fakeSource{})
	ok, err := c.Check(context.Background(), "u1", "admin", nil, permissiondom.StrategyAll)
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v, want true/nil", ok, err)
	}
}

func TestClient_Check_DelegatesToGrantedCodes(t *testing.T) {
	c := New(&fakeSource{codes: []string{"orders.read"}})
	ok, err := c.Check(context.Background(), "u1", "user", []string{"orders.read"}, permissiondom.StrategyAny)
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v, want true/nil", ok, err)
	}

	ok, err = c.Check(context.Background(), "u1", "user", []string{"orders.write"}, permissiondom.StrategyAny)
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestClient_Check_PropagatesSourceError(t *testing.T) {
	c := New(&fakeSource{err: errors.New("store unavailable")})
	_, err := c.Check(context.Background(), "u1", "user", []string{"orders.read"}, permissiondom.StrategyAny)
	if err == nil {
		t.Fatal("expected an error to propagate from the source")
	}
}

package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tenantcore/platform/internal/core/ports"
)

func TestVisibilityFilter_AlwaysScopesTenant(t *testing.T) {
	f := visibilityFilter(ports.NotificationFilter{TenantID: "t1", UserID: "u1"})

	if f["tenant_id"] != "t1" {
		t.Fatalf("expected tenant filter t1, got %v", f["tenant_id"])
	}
	users, ok := f["user_id"].(bson.M)
	if !ok {
		t.Fatalf("expected user_id $in clause, got %T", f["user_id"])
	}
	in, ok := users["$in"].(bson.A)
	if !ok || len(in) != 2 || in[0] != "" || in[1] != "u1" {
		t.Fatalf("unexpected user clause: %v", users)
	}
	if _, has := f["read"]; has {
		t.Fatalf("read filter must be absent when UnreadOnly is false")
	}
}

func TestVisibilityFilter_SuperAdminViewAndUnread(t *testing.T) {
	f := visibilityFilter(ports.NotificationFilter{UserID: "root", UnreadOnly: true})

	if v, has := f["tenant_id"]; !has || v != "" {
		t.Fatalf("tenant-less view must match empty tenant_id explicitly, got %v", v)
	}
	if f["read"] != false {
		t.Fatalf("expected read=false, got %v", f["read"])
	}
}

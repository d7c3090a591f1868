package schema

import (
	"reflect"
	"testing"
)

func TestDecodeRelationship(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want Relationship
	}{
		{
			name: "defaults",
			def:  map[string]any{"from": "Post", "to": "User"},
			want: Relationship{Type: ManyToOne, From: "Post", To: "User", ForeignKey: "user_id"},
		},
		{
			name: "has many",
			def:  map[string]any{"from": "User", "to": "Post", "type": "hasMany"},
			want: Relationship{Type: OneToMany, From: "User", To: "Post", ForeignKey: "user_id"},
		},
		{
			name: "many to many",
			def:  map[string]any{"from": "User", "to": "Role", "type": "many-to-many"},
			want: Relationship{Type: ManyToMany, From: "User", To: "Role", Through: "user_roles"},
		},
		{
			name: "explicit keys",
			def: map[string]any{
				"name": "owner", "from": "Repo", "to": "User", "type": "belongs_to",
				"foreign_key": "owner_id", "on_delete": "cascade",
			},
			want: Relationship{
				Name: "owner", Type: ManyToOne, From: "Repo", To: "User",
				ForeignKey: "owner_id", OnDelete: "cascade",
			},
		},
		{
			name: "unknown type falls back",
			def:  map[string]any{"from": "A", "to": "B", "type": "sideways"},
			want: Relationship{Type: ManyToOne, From: "A", To: "B", ForeignKey: "b_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeRelationship(tt.def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeRelationship() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeIndex(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want Index
	}{
		{
			name: "derived name",
			def:  map[string]any{"on": "User", "fields": []any{"email"}, "unique": true},
			want: Index{Name: "idx_users_email", On: "User", Fields: []string{"email"}, Unique: true},
		},
		{
			name: "columns alias",
			def:  map[string]any{"on": "Post", "columns": []any{"user_id", "created_at"}},
			want: Index{Name: "idx_posts_user_id_created_at", On: "Post", Fields: []string{"user_id", "created_at"}},
		},
		{
			name: "explicit name",
			def:  map[string]any{"name": "by_email", "on": "User", "fields": "email"},
			want: Index{Name: "by_email", On: "User", Fields: []string{"email"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeIndex(tt.def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeIndex() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

package entities

import (
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
)

// ApprovalSchema defines the review queue table
var ApprovalSchema = &interfaces.Schema{
	TableName: "approvals",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"seq": {
			Type:          "int64",
			AutoIncrement: true,
		},
		"title": {
			Type: "string",
		},
		"platform": {
			Type: "string",
		},
		"content": {
			Type: "string",
		},
		"image": {
			Type:     "string",
			Nullable: true,
		},
		"submitter_name": {
			Type: "string",
		},
		"submitter_initials": {
			Type: "string",
		},
		"submitter_avatar": {
			Type:     "string",
			Nullable: true,
		},
		"submitted_at": {
			Type: "time",
		},
		"scheduled_for": {
			Type:     "time",
			Nullable: true,
		},
		"status": {
			Type:         "string",
			DefaultValue: "pending",
		},
		"reviewer": {
			Type:     "string",
			Nullable: true,
		},
		"reason": {
			Type:     "string",
			Nullable: true,
		},
		"reviewed_at": {
			Type:     "time",
			Nullable: true,
		},
		"post_id": {
			Type:     "string",
			Nullable: true,
			ForeignKey: &interfaces.ForeignKey{
				Table:    "posts",
				Column:   "id",
				OnDelete: "SET_NULL",
			},
		},
		"created_at": {
			Type: "time",
		},
		"updated_at": {
			Type: "time",
		},
	},
	Indexes: []interfaces.Index{
		{
			Name:    "idx_approvals_status",
			Columns: []string{"status"},
		},
	},
}

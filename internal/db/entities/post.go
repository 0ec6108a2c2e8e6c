package entities

import (
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
)

// PostSchema defines the table backing scheduled posts. seq keeps the
// insertion order that day buckets are rendered in.
var PostSchema = &interfaces.Schema{
	TableName: "posts",
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
		"content": {
			Type: "string",
		},
		"platform": {
			Type: "string",
		},
		"status": {
			Type:         "string",
			DefaultValue: "draft",
		},
		"scheduled_date": {
			Type: "string",
		},
		"scheduled_time": {
			Type: "string",
		},
		"type": {
			Type:     "string",
			Nullable: true,
		},
		"image": {
			Type:     "string",
			Nullable: true,
		},
		"hashtags": {
			Type:     "strings",
			Nullable: true,
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
			Name:    "idx_posts_scheduled_date",
			Columns: []string{"scheduled_date"},
		},
		{
			Name:    "idx_posts_platform",
			Columns: []string{"platform"},
		},
	},
}

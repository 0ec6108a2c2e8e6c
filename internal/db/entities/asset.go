package entities

import (
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
)

// AssetSchema defines the media library table
var AssetSchema = &interfaces.Schema{
	TableName: "assets",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"seq": {
			Type:          "int64",
			AutoIncrement: true,
		},
		"name": {
			Type: "string",
		},
		"kind": {
			Type:         "string",
			DefaultValue: "image",
		},
		"url": {
			Type: "string",
		},
		"thumbnail": {
			Type:     "string",
			Nullable: true,
		},
		"storage_key": {
			Type:     "string",
			Nullable: true,
		},
		"content_type": {
			Type: "string",
		},
		"size": {
			Type:         "int64",
			DefaultValue: int64(0),
		},
		"tags": {
			Type:     "strings",
			Nullable: true,
		},
		"uploaded_at": {
			Type: "time",
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
			Name:    "idx_assets_kind",
			Columns: []string{"kind"},
		},
	},
}

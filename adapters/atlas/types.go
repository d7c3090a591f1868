package atlas

import (
	sqlschema "ariga.io/atlas/sql/schema"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/schema"
)

// keyType is the column type of primary and foreign keys.
func keyType(d dbconn.Dialect) sqlschema.Type {
	switch d {
	case dbconn.DialectMySQL:
		return &sqlschema.StringType{T: "varchar", Size: 255}
	default:
		return &sqlschema.StringType{T: "text"}
	}
}

func timeType(d dbconn.Dialect) sqlschema.Type {
	switch d {
	case dbconn.DialectPostgres:
		return &sqlschema.TimeType{T: "timestamptz"}
	default:
		return &sqlschema.TimeType{T: "datetime"}
	}
}

func (b *builder) columnType(f schema.Field) sqlschema.Type {
	d := b.dialect

	switch f.Type {
	case schema.FieldTypeInt, schema.FieldTypeDuration:
		if d == dbconn.DialectSQLite {
			return &sqlschema.IntegerType{T: "integer"}
		}
		return &sqlschema.IntegerType{T: "bigint"}

	case schema.FieldTypeFloat:
		switch d {
		case dbconn.DialectPostgres:
			return &sqlschema.FloatType{T: "double precision"}
		case dbconn.DialectMySQL:
			return &sqlschema.FloatType{T: "double"}
		default:
			return &sqlschema.FloatType{T: "real"}
		}

	case schema.FieldTypeBool:
		if d == dbconn.DialectPostgres {
			return &sqlschema.BoolType{T: "boolean"}
		}
		return &sqlschema.BoolType{T: "bool"}

	case schema.FieldTypeTimestamp:
		return timeType(d)

	case schema.FieldTypeJSON, schema.FieldTypeStrings, schema.FieldTypeInts:
		if d == dbconn.DialectPostgres {
			return &sqlschema.JSONType{T: "jsonb"}
		}
		return &sqlschema.JSONType{T: "json"}

	case schema.FieldTypeBytes:
		switch d {
		case dbconn.DialectPostgres:
			return &sqlschema.BinaryType{T: "bytea"}
		case dbconn.DialectMySQL:
			return &sqlschema.BinaryType{T: "longblob"}
		default:
			return &sqlschema.BinaryType{T: "blob"}
		}

	case schema.FieldTypeUUID:
		if d == dbconn.DialectPostgres {
			return &sqlschema.UUIDType{T: "uuid"}
		}
		return keyType(d)

	case schema.FieldTypeRef:
		return keyType(d)

	default:
		// string, email, url, enum, secret and unknown types.
		if d == dbconn.DialectMySQL {
			return &sqlschema.StringType{T: "varchar", Size: 255}
		}
		return &sqlschema.StringType{T: "text"}
	}
}

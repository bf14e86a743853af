package schema

// SchemaMeta 数据库 schema 版本记录（单行表，ID 恒为 1）
type SchemaMeta struct {
	ID            int `gorm:"primaryKey"`
	SchemaVersion int `gorm:"default:0"`
}

// TableName 指定表名
func (SchemaMeta) TableName() string {
	return "schema_meta"
}

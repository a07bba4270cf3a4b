package main

// gorm gen configure
// 从已迁移的数据库生成 internal/model 下的表结构模型：
//   go run ./cmd/gorm_gen -type sqlite -dsn storage/database/menu.sqlite3

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/haierkeys/menu-tree-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gen/field"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	dbType string
	dbDsn  string
)

// skipTables 不生成模型的表
var skipTables = map[string]bool{
	"sqlite_sequence": true,
	"schema_version":  true,
}

func init() {
	dType := flag.String("type", "sqlite", "数据库类型：sqlite、mysql、postgres")
	dsn := flag.String("dsn", "", "数据库 dsn 地址")

	flag.Parse()
	dbType = *dType
	dbDsn = *dsn
}

// SQLColumnToHumpStyle sql转换成驼峰模式
func SQLColumnToHumpStyle(in string) (ret string) {
	var b strings.Builder
	upper := false
	for i := 0; i < len(in); i++ {
		switch {
		case in[i] == '_':
			upper = i > 0
		case upper:
			b.WriteString(strings.ToUpper(string(in[i])))
			upper = false
		default:
			b.WriteByte(in[i])
		}
	}
	return b.String()
}

func Db(dsn string, dbType string) (*gorm.DB, error) {
	dialector, err := useDia(dsn, dbType)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	})
}

func useDia(dsn string, dbType string) (gorm.Dialector, error) {
	switch dbType {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		if !fileurl.IsExist(dsn) {
			return nil, fmt.Errorf("sqlite database %s not found, run the migrate command first", dsn)
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

func main() {
	if dbDsn == "" {
		fmt.Fprintln(os.Stderr, "-dsn is required")
		os.Exit(2)
	}

	db, err := Db(dbDsn, dbType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect db fail: %v\n", err)
		os.Exit(1)
	}

	g := gen.NewGenerator(gen.Config{
		// 模型生成在 OutPath 同级的 model 包，只生成模型不生成查询代码
		OutPath:           "./internal/query",
		ModelPkgPath:      "model",
		WithUnitTest:      false,
		FieldNullable:     false,
		FieldWithTypeTag:  true,
		FieldWithIndexTag: true,
	})
	g.UseDB(db)

	g.WithDataTypeMap(map[string]func(gorm.ColumnType) (dataType string){
		"integer": func(columnType gorm.ColumnType) (dataType string) {
			return "int"
		},
		"bigint": func(columnType gorm.ColumnType) (dataType string) {
			return "int64"
		},
	})

	opts := []gen.ModelOpt{
		gen.FieldType("revision", "int64"),
		gen.FieldGORMTag("created_at", func(tag field.GormTag) field.GormTag {
			tag.Set("autoCreateTime", "")
			return tag
		}),
		gen.FieldGORMTag("updated_at", func(tag field.GormTag) field.GormTag {
			tag.Set("autoUpdateTime", "")
			return tag
		}),
		gen.FieldJSONTagWithNS(func(columnName string) string {
			return SQLColumnToHumpStyle(columnName)
		}),
		gen.FieldNewTagWithNS("form", func(columnName string) string {
			return SQLColumnToHumpStyle(columnName)
		}),
	}

	tableList, err := db.Migrator().GetTables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list tables fail: %v\n", err)
		os.Exit(1)
	}

	for _, table := range tableList {
		if skipTables[table] || strings.HasPrefix(table, "sqlite_") {
			continue
		}
		if table == "menu_link_override" {
			// 覆盖记录的字段为空表示沿用声明值，生成为指针
			g.GenerateModel(table, append(opts[1:], gen.FieldType("parent_id", "*string"),
				gen.FieldType("weight", "*int"),
				gen.FieldType("enabled", "*bool"),
				gen.FieldType("expanded", "*bool"),
				gen.FieldType("title", "*string"),
				gen.FieldType("description", "*string"))...)
			continue
		}
		g.GenerateModel(table, opts...)
	}
	g.Execute()
}

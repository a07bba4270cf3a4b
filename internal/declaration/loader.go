// Package declaration 读取模块声明的菜单链接
//
// 每个模块提供一个 <provider>.links.menu.yml 文件，内容是以链接 ID 为键的 YAML 映射，
// 文件内的声明顺序会被保留。
package declaration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	"github.com/haierkeys/menu-tree-service/pkg/fileurl"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileSuffix 声明文件后缀
const FileSuffix = ".links.menu.yml"

// DefaultMenu 未指定 menu_name 时使用的菜单
const DefaultMenu = "tools"

// entry 声明文件中单个链接的结构
type entry struct {
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	RouteName       string            `yaml:"route_name"`
	RouteParameters map[string]string `yaml:"route_parameters"`
	URL             string            `yaml:"url"`
	MenuName        string            `yaml:"menu_name"`
	Parent          string            `yaml:"parent"`
	Weight          int               `yaml:"weight"`
	Enabled         *bool             `yaml:"enabled"`
	Expanded        bool              `yaml:"expanded"`
}

// ProviderOf 根据文件名返回 provider，非声明文件返回空字符串
func ProviderOf(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, FileSuffix) {
		return ""
	}
	return strings.TrimSuffix(base, FileSuffix)
}

// Parse 解析一个声明文件的内容
func Parse(provider string, data []byte) ([]*domain.Declaration, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: %v", provider, err))
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: top level must be a mapping of link ids", provider))
	}

	out := make([]*domain.Declaration, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		id := strings.TrimSpace(root.Content[i].Value)
		var e entry
		if err := root.Content[i+1].Decode(&e); err != nil {
			return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: %s: %v", provider, id, err))
		}
		d, err := e.toDeclaration(provider, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (e *entry) toDeclaration(provider, id string) (*domain.Declaration, error) {
	if id == "" {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: empty link id", provider))
	}
	if strings.HasPrefix(id, domain.ContentIDPrefix) {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: id %s uses the reserved prefix %s", provider, id, domain.ContentIDPrefix))
	}
	if strings.TrimSpace(e.Title) == "" {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: %s has no title", provider, id))
	}
	if e.RouteName == "" && e.URL == "" {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: %s needs route_name or url", provider, id))
	}
	if e.Parent == id {
		return nil, code.ErrorInvalidDeclaration.WithDetails(fmt.Sprintf("%s: %s is its own parent", provider, id))
	}

	d := &domain.Declaration{
		ID:          id,
		MenuName:    e.MenuName,
		ParentID:    e.Parent,
		Weight:      e.Weight,
		Title:       e.Title,
		Description: e.Description,
		RouteName:   e.RouteName,
		RouteParams: e.RouteParameters,
		URL:         e.URL,
		Enabled:     true,
		Expanded:    e.Expanded,
		Provider:    provider,
	}
	if d.MenuName == "" {
		d.MenuName = DefaultMenu
	}
	if len(d.RouteParams) == 0 {
		d.RouteParams = nil
	}
	if e.Enabled != nil {
		d.Enabled = *e.Enabled
	}
	return d, nil
}

// LoadFile 读取单个声明文件
func LoadFile(path string) ([]*domain.Declaration, error) {
	provider := ProviderOf(path)
	if provider == "" {
		return nil, errors.Errorf("%s is not a %s file", path, FileSuffix)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read declaration file %s", path)
	}
	return Parse(provider, data)
}

// LoadDir 按文件名顺序读取目录下全部声明文件，目录不存在时返回空列表
func LoadDir(dir string) ([]*domain.Declaration, error) {
	if dir == "" || !fileurl.IsDir(dir) {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read declarations dir %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || ProviderOf(e.Name()) == "" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []*domain.Declaration
	for _, name := range names {
		decls, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
	return out, nil
}

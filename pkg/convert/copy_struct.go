package convert

import (
	"time"

	"github.com/haierkeys/menu-tree-service/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// copyOption 相同字段名之间复制，time.Time 转换为 timex.Time
var copyOption = copier.Option{
	DeepCopy: true,
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				t, ok := src.(time.Time)
				if !ok {
					return nil, errors.New("src type not matching")
				}
				return timex.Time(t), nil
			},
		},
	},
}

// StructAssign
// dst 目标结构体，src 源结构体
// 它会把src与dst的相同字段名的值，复制到dst中
func StructAssign(src any, dst any) error {
	if err := copier.CopyWithOption(dst, src, copyOption); err != nil {
		return errors.Wrap(err, "copy struct failed")
	}
	return nil
}

/**
 * @Description: 结构体map互转
 * @param param interface{} 需要被转的数据
 * @param data interface{} 转换完成后的数据  需要用引用传进来
 */
func StructToMap(param any, data map[string]interface{}) error {
	str, err := sonic.Marshal(param)
	if err != nil {
		return errors.Wrap(err, "marshal struct failed")
	}
	if err := sonic.Unmarshal(str, &data); err != nil {
		return errors.Wrap(err, "unmarshal map failed")
	}
	return nil
}

// ToJSON 以缩进格式序列化
func ToJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

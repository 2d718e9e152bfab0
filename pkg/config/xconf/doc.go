// Package xconf 基于 koanf 加载 YAML/JSON 配置文件，并通过 fsnotify 监视变更。
//
//	cfg, err := xconf.New("/etc/app/xfilelog.yaml")
//	var c MyConfig // 先填默认值
//	err = cfg.Unmarshal("", &c)
//
//	w, err := xconf.Watch(cfg, func(cfg xconf.Config, err error) {
//	    // 重新 Unmarshal 并应用
//	})
//	w.Start()
//	defer w.Stop()
//
// 反序列化使用 koanf 默认的弱类型转换，字符串形式的数字和布尔值可以正常解析。
package xconf

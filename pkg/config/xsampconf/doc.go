// Package xsampconf 提供采样策略的声明式配置与热更新。
//
// 采样策略写在 YAML/JSON 配置文件里，Build 把声明式的 Spec
// 构建为 xsampling 采样器，Dynamic + Watcher 组合实现不重启
// 进程的策略热替换。
//
// 核心组件:
//   - Load / FromBytes / Build: 配置到采样器的构建
//   - Dynamic: 原子热替换的采样器包装
//   - Watcher: fsnotify 文件监视，变更后重建并换入
//
// 配置示例:
//
//	strategy: composite
//	mode: or
//	samplers:
//	  - strategy: flag
//	    rate: 0.05
//	    flag:
//	      field: sampling_flags
//	      always: [debug]
//	  - strategy: keybased
//	    rate: 0.1
//	    key:
//	      source: metadata
//	      field: tenant_id
//
// 设计决策:
//   - 重载失败保留旧采样器，坏配置不会把决策路径打挂，
//     错误只通过回调上报
//   - Dynamic 固定实现尾部能力，换入头部采样器后尾部令牌
//     回落到头部结果，决策路径无需感知替换
package xsampconf

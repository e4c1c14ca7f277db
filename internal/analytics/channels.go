package analytics

import (
	"sort"

	"github.com/dushixiang/lumen/internal/models"
)

// ChannelRefs 从记录集提取去重后的频道引用，按名称排序。
// configured 为当前配置中的频道，记录里出现但配置中不存在的
// 频道标记为 orphaned（历史数据仍需可筛选）。
func ChannelRefs(records []models.Signal, configured []models.Channel) []models.ChannelRef {
	active := make(map[string]*models.Channel, len(configured))
	for i := range configured {
		active[configured[i].ID] = &configured[i]
	}

	seen := make(map[string]bool)
	var refs []models.ChannelRef
	for i := range records {
		r := &records[i]
		key := channelKey(r)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		ref := models.ChannelRef{ID: r.ChannelID, Name: r.ChannelName}
		if ch, ok := active[r.ChannelID]; ok {
			ref.Name = ch.ChannelName
			ref.IsActive = ch.IsActive
		} else {
			ref.Orphaned = true
		}
		refs = append(refs, ref)
	}

	// 配置了但还没有任何信号的频道同样返回
	for i := range configured {
		ch := &configured[i]
		if seen[ch.ID] {
			continue
		}
		refs = append(refs, models.ChannelRef{ID: ch.ID, Name: ch.ChannelName, IsActive: ch.IsActive})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

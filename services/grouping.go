package services

// ServiceGroup is one section of a quote: the items sharing a group label,
// in their original relative order.
type ServiceGroup struct {
	Name     string
	Items    []LineItem
	Subtotal float64
}

// GroupByService sections items by group label in first-seen order.
// Preview and both exports rely on this exact ordering.
func GroupByService(items []LineItem) []ServiceGroup {
	var groups []ServiceGroup
	index := make(map[string]int)
	for _, it := range items {
		name := it.GroupName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ServiceGroup{Name: name})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	for i := range groups {
		groups[i].Subtotal = CalcSubtotal(groups[i].Items)
	}
	return groups
}

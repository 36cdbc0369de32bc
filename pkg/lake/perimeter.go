package lake

import "container/heap"

// candidate is a perimeter node keyed by its effective surface elevation.
type candidate struct {
	node int
	key  float64
}

// perimeter is a min-heap of candidates ordered by key, then node ID.
type perimeter []candidate

func (p perimeter) Len() int { return len(p) }

func (p perimeter) Less(i, j int) bool {
	if p[i].key != p[j].key {
		return p[i].key < p[j].key
	}
	return p[i].node < p[j].node
}

func (p perimeter) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *perimeter) Push(x any) { *p = append(*p, x.(candidate)) }

func (p *perimeter) Pop() any {
	old := *p
	c := old[len(old)-1]
	*p = old[:len(old)-1]
	return c
}

func (p *perimeter) push(node int, key float64) { heap.Push(p, candidate{node: node, key: key}) }

func (p *perimeter) pop() candidate { return heap.Pop(p).(candidate) }

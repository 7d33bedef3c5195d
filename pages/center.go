package pages

import (
	"math"

	"nameplate/model"
)

// CenteredPage returns the page item whose vertical center is closest to the
// container's vertical center. Ties go to the earliest item.
func CenteredPage(container model.ContainerMetrics, items []model.PageMetrics) (model.PageMetrics, bool) {
	center := container.Top + container.Height/2

	best := -1
	closest := math.Inf(1)
	for i, item := range items {
		dist := math.Abs(item.Top + item.Height/2 - center)
		if dist < closest {
			closest = dist
			best = i
		}
	}

	if best == -1 {
		return model.PageMetrics{}, false
	}
	return items[best], true
}

// MaxScroll is the largest valid scroll offset of the container.
func MaxScroll(scrollHeight, clientHeight float64) float64 {
	return math.Max(0, scrollHeight-clientHeight)
}

// ClampScroll keeps a scroll offset within [0, scrollHeight-clientHeight].
func ClampScroll(top, scrollHeight, clientHeight float64) float64 {
	return math.Min(math.Max(top, 0), MaxScroll(scrollHeight, clientHeight))
}

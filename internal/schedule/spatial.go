package schedule

import (
	"math"
	"sort"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

// cellSizeDegrees is the grid cell edge, roughly 550m of latitude.
const cellSizeDegrees = 0.005

type gridCell struct {
	latCell int
	lonCell int
}

// stopGrid is a uniform grid over stop coordinates for near-radius queries
// in sublinear time. It is immutable after construction.
type stopGrid struct {
	cells map[gridCell][]models.Stop
}

func cellFor(lat, lon float64) gridCell {
	return gridCell{
		latCell: int(math.Floor(lat / cellSizeDegrees)),
		lonCell: int(math.Floor(lon / cellSizeDegrees)),
	}
}

func newStopGrid(stops map[string]models.Stop) *stopGrid {
	grid := &stopGrid{cells: make(map[gridCell][]models.Stop)}
	for _, stop := range stops {
		cell := cellFor(stop.Lat, stop.Lon)
		grid.cells[cell] = append(grid.cells[cell], stop)
	}
	return grid
}

type stopWithDistance struct {
	stop     models.Stop
	distance float64
}

// near returns stops within radiusMeters of the point, nearest first.
func (g *stopGrid) near(lat, lon, radiusMeters float64) []models.Stop {
	minLat, maxLat, minLon, maxLon := utils.BoundingBox(lat, lon, radiusMeters)
	minCell := cellFor(minLat, minLon)
	maxCell := cellFor(maxLat, maxLon)

	var candidates []stopWithDistance
	for latCell := minCell.latCell; latCell <= maxCell.latCell; latCell++ {
		for lonCell := minCell.lonCell; lonCell <= maxCell.lonCell; lonCell++ {
			for _, stop := range g.cells[gridCell{latCell: latCell, lonCell: lonCell}] {
				distance := utils.Haversine(lat, lon, stop.Lat, stop.Lon)
				if distance <= radiusMeters {
					candidates = append(candidates, stopWithDistance{stop: stop, distance: distance})
				}
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].stop.ID < candidates[j].stop.ID
	})

	stops := make([]models.Stop, len(candidates))
	for i, c := range candidates {
		stops[i] = c.stop
	}
	return stops
}

// Package register registers all sensor models.
package register

import (
	// register sensor models.
	_ "go.viam.com/motionsensors/components/movementsensor/adxl345"
	_ "go.viam.com/motionsensors/components/movementsensor/lsm6ds3"
)

package flake

// SetDefaults populates p from the compression preset table, keyed by level
// 0..12. Level 5 is the baseline; every other level is expressed as a diff
// against it, mirroring the historical flake encoder's preset table.
func SetDefaults(p *Params, level int) error {
	if level < 0 || level > 12 {
		return newValidationError("compression level %d out of range [0,12]", level)
	}

	*p = Params{
		CompressionLevel: level,
		OrderMethod:      OrderEst,
		StereoMethod:     StereoEstimate,
		BlockSize:        4096,
		PredictionType:   PredictionLevinson,
		MinPredOrder:     1,
		MaxPredOrder:     8,
		MinPartOrder:     0,
		MaxPartOrder:     5,
		PaddingSize:      8192,
	}

	switch level {
	case 0:
		p.StereoMethod = StereoIndependent
		p.BlockSize = 1152
		p.PredictionType = PredictionFixed
		p.MinPredOrder = 2
		p.MaxPredOrder = 2
		p.MinPartOrder = 0
		p.MaxPartOrder = 3
	case 1:
		p.BlockSize = 1152
		p.PredictionType = PredictionFixed
		p.MinPredOrder = 2
		p.MaxPredOrder = 4
		p.MinPartOrder = 0
		p.MaxPartOrder = 3
	case 2:
		p.BlockSize = 1152
		p.PredictionType = PredictionFixed
		p.MinPredOrder = 0
		p.MaxPredOrder = 4
		p.MinPartOrder = 0
		p.MaxPartOrder = 3
	case 3:
		p.StereoMethod = StereoIndependent
		p.MaxPredOrder = 6
		p.MaxPartOrder = 4
	case 4:
		p.MaxPartOrder = 4
	case 5:
		// baseline
	case 6:
		p.MaxPartOrder = 6
	case 7:
		p.OrderMethod = Order4Level
		p.MaxPartOrder = 6
	case 8:
		p.OrderMethod = Order4Level
		p.MaxPredOrder = 12
		p.MaxPartOrder = 6
	case 9:
		p.OrderMethod = OrderLog
		p.MaxPredOrder = 12
		p.MaxPartOrder = 8
		p.VariableBlockSize = true
	case 10:
		p.OrderMethod = OrderSearch
		p.MaxPredOrder = 12
		p.MaxPartOrder = 8
		p.VariableBlockSize = true
	case 11:
		p.BlockSize = 8192
		p.OrderMethod = OrderLog
		p.MaxPredOrder = 32
		p.MaxPartOrder = 8
		p.VariableBlockSize = true
	case 12:
		p.BlockSize = 8192
		p.OrderMethod = OrderSearch
		p.MaxPredOrder = 32
		p.MaxPartOrder = 8
		p.VariableBlockSize = true
	}

	return nil
}

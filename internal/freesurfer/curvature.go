package freesurfer

import "fs-atlas-decoder/internal/binio"

// DecodeCurvature decodes a "new" curvature file (magic FF FF FF) such as
// lh.curv or rh.sulc. Exactly NumVertices values are read regardless of
// ValuesPerVertex.
func DecodeCurvature(data []byte) (*CurvatureField, error) {
	c := binio.NewCursor(data)
	if err := expectMagic(c, FormatCurvature, curvatureMagic); err != nil {
		return nil, err
	}

	nv, err := readHeaderInt(c, FormatCurvature, "vertex count")
	if err != nil {
		return nil, err
	}
	nf, err := readHeaderInt(c, FormatCurvature, "face count")
	if err != nil {
		return nil, err
	}
	vpv, err := readHeaderInt(c, FormatCurvature, "values per vertex")
	if err != nil {
		return nil, err
	}
	if nv < 0 {
		return nil, headerError(FormatCurvature, 3, "negative vertex count %d", nv)
	}

	need := int64(nv) * 4
	if need > int64(c.Remaining()) {
		return nil, truncatedError(FormatCurvature, c.Offset(), clampInt(need), c.Remaining(),
			"curvature values")
	}

	field := &CurvatureField{
		NumVertices:     int(nv),
		NumFaces:        int(nf),
		ValuesPerVertex: int(vpv),
		Values:          make([]float32, nv),
	}
	for i := range field.Values {
		v, err := c.ReadFloat32BE()
		if err != nil {
			return nil, cursorError(FormatCurvature, err)
		}
		field.Values[i] = v
	}
	return field, nil
}

package assessment

func testResponse(doc DocID, role, cas string, start int) Response {
	return Response{
		DocID:                   doc,
		Type:                    "Conflict.Attack",
		Role:                    role,
		CAS:                     cas,
		CASOffsets:              Span{Start: start, End: start + len(cas) - 1},
		BaseFiller:              Span{Start: start, End: start + len(cas) - 1},
		PredicateJustifications: []Span{{Start: 0, End: 40}},
		Realis:                  RealisActual,
	}
}

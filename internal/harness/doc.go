// Package harness runs pantry scenarios end to end.
//
// A scenario is a YAML file listing CLI invocations against a fresh data
// directory. Each step may check the JSON response, and assertions check
// the document left behind once all steps ran.
//
// # Scenario Format
//
//	name: restock
//	description: "Split a batch, consume one unit, merge the rest"
//	start: 2024-01-01
//	config:
//	  language: de
//	steps:
//	  - run: [article, add, --name, Milk, --expiration-days, "7"]
//	    expect:
//	      status: ok
//	      data: { id: 1, name: Milk }
//	  - advance: 48h
//	    run: [consume, "3"]
//	assertions:
//	  - type: live_count
//	    collection: assignments
//	    count: 2
//	  - type: record
//	    collection: assignments
//	    where: { id: 3 }
//	    expect: { consumedDate: "2024-01-03" }
//	  - type: stock
//	    article: 1
//	    count: 2
//
// # Assertion Types
//
//   - live_count: number of records in a collection that are not deleted
//   - record: exactly one record matches where, and it carries expect
//   - stock: units of an article that are neither deleted nor consumed
//
// # Deterministic Runs
//
// The clock starts at midnight UTC on the start date and only moves when
// a step says advance. Ids come from idgen.SequenceSource, so the n-th id
// drawn in a scenario is n unless it is already taken. Two runs of the
// same scenario therefore leave byte-identical documents, which
// RunWithGolden compares against testdata/golden/{name}.golden.
package harness

// Package harness runs YAML scenarios against the record service and checks
// the outcome of every step, the final backing file and the number of
// times the file was rewritten.
//
// # Scenario Format
//
//	name: bolt_to_nut
//	description: "Rename the only part and miss a delete"
//	schema: part            # optional, defaults to part
//	records:                # initial file content, one list per line
//	  - ["1", Bolt, ACME, X, Y, M, Box, "9.99", n/a]
//	steps:
//	  - op: search
//	    field: NAME
//	    value: bolt
//	    expect: { keys: [1] }
//	  - op: update
//	    key: 1
//	    fields: ["1", Nut, ACME, X, Y, S, Bag, "0.10", ""]
//	    expect: { found: true }
//	assertions:
//	  - type: file_records
//	    records:
//	      - ["1", Nut, ACME, X, Y, S, Bag, "0.10", ""]
//	  - type: persist_count
//	    count: 1
//
// # Steps
//
// Supported ops are insert, search, update, delete and save. A step may set
// fail_persist to make the file write of that step fail, which lets a
// scenario observe a change that was applied in memory only.
//
// # Assertion Types
//
//   - file_records: the backing file holds exactly these records, in order
//   - record: the record with key has exactly these fields
//   - no_record: no record has key
//   - record_count: the collection holds count records
//   - persist_count: the file was rewritten count times
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/bolt_to_nut.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario, t.TempDir())
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness

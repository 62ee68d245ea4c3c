package scenario

import "testing"

func TestSuite_RunAll_AllScenariosPass(t *testing.T) {
	suite := NewSuite()
	results := suite.RunAll()

	if len(results) == 0 {
		t.Fatal("RunAll() produced no results")
	}
	for _, r := range results {
		if !r.Passed() {
			t.Errorf("%s: got % X, want % X (err=%v)", r.Name, r.Actual, r.Expected, r.Err)
		}
	}
}

func TestSuite_Log_RecordsActivity(t *testing.T) {
	suite := NewSuite()
	suite.RunAll()
	if len(suite.Log()) == 0 {
		t.Errorf("Log() is empty after RunAll()")
	}
}

package eth

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func parsedABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(microLoanABI))
	if err != nil {
		t.Fatalf("parse ABI: %v", err)
	}
	return parsed
}

func TestABIHasFullSurface(t *testing.T) {
	parsed := parsedABI(t)
	for _, method := range []string{
		"createLoan", "fundLoan", "repayLoan", "markAsDefaulted",
		"getBorrowerLoans", "getLenderLoans", "getLoanDetails",
		"getAvailableLoans", "getTotalLoanCount",
		"totalLoanVolume", "activeLoans", "getAverageInterestRate",
	} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Errorf("ABI missing method %s", method)
		}
	}
	if _, ok := parsed.Events["LoanCreated"]; !ok {
		t.Error("ABI missing LoanCreated event")
	}
}

func TestLoanTupleFieldOrder(t *testing.T) {
	parsed := parsedABI(t)
	tuple := parsed.Methods["getLoanDetails"].Outputs[0].Type
	want := []string{
		"id", "borrower", "lender", "amount", "interestRate", "duration",
		"createdTimestamp", "fundedTimestamp", "dueTimestamp",
		"isCollateralized", "collateralAmount", "status",
	}
	if len(tuple.TupleElems) != len(want) {
		t.Fatalf("tuple has %d components, want %d", len(tuple.TupleElems), len(want))
	}
	for i, name := range tuple.TupleRawNames {
		if name != want[i] {
			t.Errorf("component %d = %q, want %q", i, name, want[i])
		}
	}
}

func TestCreatedLoanID(t *testing.T) {
	contractAddr := common.HexToAddress("0xaEFF5291337d3f8781E872E3A181BcB36019D90a")
	c := &Client{abi: parsedABI(t), address: contractAddr}
	eventID := c.abi.Events["LoanCreated"].ID

	idTopic := common.BigToHash(big.NewInt(42))
	borrowerTopic := common.HexToHash("0x00000000000000000000000033D8af5C27B4Df100Bb959E7241FA5175fc28dBB")

	rcpt := &types.Receipt{Logs: []*types.Log{
		{Address: common.HexToAddress("0x1"), Topics: []common.Hash{eventID, idTopic}}, // wrong contract
		{Address: contractAddr, Topics: []common.Hash{common.HexToHash("0x2"), idTopic}}, // wrong event
		{Address: contractAddr, Topics: []common.Hash{eventID, idTopic, borrowerTopic}},
	}}
	id, ok := c.CreatedLoanID(rcpt)
	if !ok || id != 42 {
		t.Fatalf("CreatedLoanID = %d, %v; want 42, true", id, ok)
	}
}

func TestCreatedLoanID_AbsentEventIsAcceptable(t *testing.T) {
	c := &Client{abi: parsedABI(t), address: common.HexToAddress("0x1")}
	if _, ok := c.CreatedLoanID(&types.Receipt{}); ok {
		t.Fatal("found a loan id in an empty receipt")
	}
}

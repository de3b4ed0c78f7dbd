package checker

var CalculateHash = calculateHash

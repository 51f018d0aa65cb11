package ledger

// diaryABI describes the two contract methods the client consumes.
const diaryABI = `[
  {
    "type": "function",
    "name": "addEntry",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "weightKg", "type": "uint16"},
      {"name": "steps", "type": "uint32"},
      {"name": "caloriesIn", "type": "uint16"},
      {"name": "caloriesOut", "type": "uint16"},
      {"name": "note", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getMyEntries",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      {
        "name": "",
        "type": "tuple[]",
        "components": [
          {"name": "timestamp", "type": "uint256"},
          {"name": "weightKg", "type": "uint16"},
          {"name": "steps", "type": "uint32"},
          {"name": "caloriesIn", "type": "uint16"},
          {"name": "caloriesOut", "type": "uint16"},
          {"name": "note", "type": "string"}
        ]
      }
    ]
  }
]`

const (
	methodAddEntry     = "addEntry"
	methodGetMyEntries = "getMyEntries"
)

package ledger

// ContractABI is the interface of the quiz contract.
const ContractABI = `[
  {"type":"error","name":"InvalidAnswerCount","inputs":[]},
  {"type":"error","name":"InvalidBatch","inputs":[]},
  {"type":"event","name":"SubmissionCreated","anonymous":false,"inputs":[
    {"indexed":true,"name":"submissionId","type":"uint256"},
    {"indexed":true,"name":"user","type":"address"},
    {"indexed":false,"name":"batchId","type":"uint8"},
    {"indexed":false,"name":"score","type":"uint8"}
  ]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"QUESTIONS_HASH","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"QUESTIONS_PER_BATCH","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"TOTAL_BATCHES","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"getRandomBatch","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"getSubmission","stateMutability":"view",
    "inputs":[{"name":"_submissionId","type":"uint256"}],
    "outputs":[
      {"name":"user","type":"address"},
      {"name":"batchId","type":"uint8"},
      {"name":"score","type":"uint8"},
      {"name":"timestamp","type":"uint32"},
      {"name":"answers","type":"string[5]"}
    ]},
  {"type":"function","name":"getUserSubmissions","stateMutability":"view",
    "inputs":[{"name":"_user","type":"address"}],
    "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"submissionCount","stateMutability":"view","inputs":[],
    "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"setQuestionsIpfsHash","stateMutability":"nonpayable",
    "inputs":[{"name":"_newHash","type":"string"}],"outputs":[]},
  {"type":"function","name":"submitAnswers","stateMutability":"nonpayable",
    "inputs":[
      {"name":"_batchId","type":"uint8"},
      {"name":"_answers","type":"string[5]"},
      {"name":"_correctAnswers","type":"string[5]"},
      {"name":"_score","type":"uint8"}
    ],"outputs":[]}
]`
